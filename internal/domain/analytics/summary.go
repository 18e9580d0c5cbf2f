package analytics

import (
	"encoding/csv"
	"io"
	"time"
)

type Summary struct {
	PageID string            `json:"page_id"`
	Total  int               `json:"total"`
	Counts map[EventType]int `json:"counts"`
	First  *time.Time        `json:"first,omitempty"`
	Last   *time.Time        `json:"last,omitempty"`
}

// Summarize counts events per type. Every known type is present in Counts.
func Summarize(pageID string, events []Event) Summary {
	s := Summary{PageID: pageID, Counts: make(map[EventType]int, len(eventTypes))}
	for _, t := range eventTypes {
		s.Counts[t] = 0
	}
	for i := range events {
		e := events[i]
		s.Total++
		s.Counts[EventType(e.Type)]++
		if s.First == nil || e.CreatedAt.Before(*s.First) {
			ts := e.CreatedAt
			s.First = &ts
		}
		if s.Last == nil || e.CreatedAt.After(*s.Last) {
			ts := e.CreatedAt
			s.Last = &ts
		}
	}
	return s
}

// WriteCSV writes events as id,page_id,event_type,created_at,metadata rows.
func WriteCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "page_id", "event_type", "created_at", "metadata"}); err != nil {
		return err
	}
	for _, e := range events {
		meta := string(e.Metadata)
		if err := cw.Write([]string{e.ID, e.PageID, e.Type, e.CreatedAt.UTC().Format(time.RFC3339), meta}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
