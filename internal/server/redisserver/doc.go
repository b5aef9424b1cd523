// Package redisserver serves the RESP protocol over TCP.
//
// Each accepted connection gets its own goroutine that decodes one frame
// at a time, hands it to a Handler, and writes the reply in request order.
// Replies are buffered and flushed once no further pipelined request is
// waiting in the read buffer.
//
// A frame that cannot be decoded closes the connection without a reply:
// after a framing error the position of the next frame is unknown.
package redisserver
