package resultstore

import (
	"encoding/json"
)

// Record is one stored search result
type Record struct {
	ID        string          `json:"id" boltholdKey:"ID"`
	Key       string          `json:"key" boltholdIndex:"Key"`
	Digest    string          `json:"digest" boltholdIndex:"Digest"`
	Search    string          `json:"search"`
	Payload   json.RawMessage `json:"payload"`
	UsedAt    int64           `json:"usedAt" boltholdIndex:"UsedAt"`
	CreatedAt int64           `json:"createdAt" boltholdIndex:"CreatedAt"`
}

// Decode unmarshals the payload into v
func (r *Record) Decode(v interface{}) error {
	return json.Unmarshal(r.Payload, v)
}
