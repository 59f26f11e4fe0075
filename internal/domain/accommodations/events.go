package accommodations

import "time"

type AccommodationListed struct {
	AccommodationID AccommodationID
	Host            HostID
	City            string
	At              time.Time
}

func (e AccommodationListed) EventName() string     { return "accommodation.listed" }
func (e AccommodationListed) AggregateID() string   { return string(e.AccommodationID) }
func (e AccommodationListed) OccurredAt() time.Time { return e.At }

type AccommodationDelisted struct {
	AccommodationID AccommodationID
	At              time.Time
}

func (e AccommodationDelisted) EventName() string     { return "accommodation.delisted" }
func (e AccommodationDelisted) AggregateID() string   { return string(e.AccommodationID) }
func (e AccommodationDelisted) OccurredAt() time.Time { return e.At }
