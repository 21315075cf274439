package handler

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// StatusValue accepts a status as either a JSON string or number
type StatusValue string

// UnmarshalJSON implements json.Unmarshaler
func (s *StatusValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = StatusValue(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = StatusValue(n.String())
	return nil
}

// StatusRequest changes the status of a parcel or dispatch
type StatusRequest struct {
	Status StatusValue `json:"status" binding:"required" swaggertype:"string" example:"in_transit"`
}

// ParcelIDsRequest carries a set of parcels
type ParcelIDsRequest struct {
	ParcelIDs []uuid.UUID `json:"parcel_ids" binding:"required,min=1"`
}
