package sse

import (
	"bytes"
	"io"
)

// Event — одно событие в формате text/event-stream
type Event struct {
	Event []byte
	Data  []byte
}

// MarshalTo записывает событие в поток в проводном формате SSE
func (e *Event) MarshalTo(w io.Writer) error {
	var buf bytes.Buffer
	if len(e.Event) > 0 {
		buf.WriteString("event: ")
		buf.Write(e.Event)
		buf.WriteByte('\n')
	}
	// данные не должны содержать переводов строк, иначе каждая строка
	// оформляется отдельным полем data
	for _, line := range bytes.Split(e.Data, []byte{'\n'}) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
