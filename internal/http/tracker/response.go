package tracker

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/chatledger/internal/stats"
	"github.com/MrJamesThe3rd/chatledger/internal/tracker"
)

type trackerResponse struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	ChatID int64  `json:"chat_id"`
}

type runResponse struct {
	RunID            uuid.UUID      `json:"run_id"`
	Tracker          string         `json:"tracker"`
	DryRun           bool           `json:"dry_run"`
	Uploaded         []string       `json:"uploaded"`
	Registered       []string       `json:"registered"`
	MissingReference []string       `json:"missing_reference"`
	Failed           []string       `json:"failed"`
	HelpRequests     []int64        `json:"help_requests"`
	Stats            *statsResponse `json:"stats,omitempty"`
	Report           string         `json:"report,omitempty"`
	Help             string         `json:"help,omitempty"`
}

type statsResponse struct {
	Month       string   `json:"month"`
	PeriodTotal string   `json:"period_total"`
	DayTotal    string   `json:"day_total"`
	Mean        *float64 `json:"mean,omitempty"`
	StdDev      *float64 `json:"std_dev,omitempty"`
	Days        int      `json:"days"`
	Count       int      `json:"count"`
}

func toTrackerResponse(t *tracker.Tracker) trackerResponse {
	return trackerResponse{Name: t.Name, Kind: t.Profile.Kind, ChatID: t.ChatID}
}

func toRunResponse(res *tracker.Result) runResponse {
	resp := runResponse{
		RunID:            res.RunID,
		Tracker:          res.Tracker,
		DryRun:           res.DryRun,
		Uploaded:         []string{},
		Registered:       []string{},
		MissingReference: []string{},
		Failed:           []string{},
		HelpRequests:     []int64{},
		Report:           res.Report,
		Help:             res.Help,
	}

	if b := res.Buckets; b != nil {
		resp.Uploaded = texts(b.ToUpload)
		resp.Registered = texts(b.NewReferences)
		resp.MissingReference = texts(b.MissingReference)
		resp.Failed = texts(b.FailedToParse)

		for _, h := range b.HelpRequested {
			resp.HelpRequests = append(resp.HelpRequests, h.MessageID)
		}
	}

	if res.Stats != nil {
		resp.Stats = toStatsResponse(*res.Stats)
	}

	return resp
}

func toStatsResponse(m stats.Monthly) *statsResponse {
	return &statsResponse{
		Month:       m.Month.Format("2006-01"),
		PeriodTotal: m.PeriodTotal.String(),
		DayTotal:    m.DayTotal.String(),
		Mean:        finite(m.Mean),
		StdDev:      finite(m.StdDev),
		Days:        m.Days,
		Count:       m.Count,
	}
}

// finite drops NaN, which JSON cannot carry.
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	return &f
}

func texts[T fmt.Stringer](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.String())
	}

	return out
}
