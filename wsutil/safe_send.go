package wsutil

import "log"

// SafeSend delivers data to a client send channel without blocking the hub.
// A slow or closing client simply misses the event; panics from a closed
// channel are recovered and logged.
func SafeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[wsutil] SafeSend recovered panic: %v", r)
		}
	}()
	select {
	case ch <- data:
	default:
	}
}
