package client

import "encoding/json"

// Envelope is the wire-level wrapper every backend response arrives in.
// Services disagree on the success indicator: some send a boolean `success`
// flag, others a numeric `code` (200 or 0 meaning ok). Both shapes decode
// into this one type so the rest of the client layer operates on a single
// contract.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Code    *int            `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK interprets the success indicator. The second return value is false when
// the envelope carries no indicator at all.
func (e *Envelope) OK() (ok, recognized bool) {
	if e.Success != nil {
		return *e.Success, true
	}
	if e.Code != nil {
		return *e.Code == 200 || *e.Code == 0, true
	}
	return false, false
}

// decodeEnvelope normalizes a raw response body into Ok(data) or an error.
// A false indicator yields a BusinessError carrying the server message; an
// unrecognizable body yields ErrEnvelopeInvalid.
func decodeEnvelope(body []byte) (json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ErrEnvelopeInvalid
	}

	ok, recognized := env.OK()
	if !recognized {
		return nil, ErrEnvelopeInvalid
	}
	if !ok {
		return nil, NewBusinessError(env.Message)
	}

	return env.Data, nil
}
