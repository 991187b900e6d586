package ws

func (w *Client) subscribe() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(Command{
		Command:    "subscribe",
		Identifier: w.identifier,
	})
}
