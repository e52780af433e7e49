package chain

import (
	"encoding/json"
	"strconv"
)

// Event is the raw record handed to the projection layer: one chain event
// with its payload still undecoded. EventID is "<tx_digest>:<seq>" and is
// stable across redelivery, so downstream layers can use it for dedup and
// audit rows. Delivery is at-least-once within a session.
type Event struct {
	TxDigest    string          `json:"tx_digest"`
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	Data        json.RawMessage `json:"data"`
	TimestampMs int64           `json:"timestamp_ms"`
}

// rpcEvent is the wire shape returned by the node, both over the websocket
// subscription and the queryEvents polling endpoint.
type rpcEvent struct {
	ID struct {
		TxDigest string `json:"txDigest"`
		EventSeq string `json:"eventSeq"`
	} `json:"id"`
	Type        string          `json:"type"`
	ParsedJSON  json.RawMessage `json:"parsedJson"`
	TimestampMs json.Number     `json:"timestampMs"`
}

func (e *rpcEvent) toEvent() Event {
	ts, _ := strconv.ParseInt(e.TimestampMs.String(), 10, 64)
	return Event{
		TxDigest:    e.ID.TxDigest,
		EventID:     e.ID.TxDigest + ":" + e.ID.EventSeq,
		EventType:   e.Type,
		Data:        e.ParsedJSON,
		TimestampMs: ts,
	}
}
