package model

import "time"

type DailyVisit struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}
