// Package domain contains analytics read models. Everything here is
// derived, tenant-scoped and read-only.
package domain

// FunnelReport counts open and closed conversations per funnel stage.
type FunnelReport struct {
	Stages         map[string]int `json:"stages"`
	Total          int            `json:"total"`
	Converted      int            `json:"converted"`
	Lost           int            `json:"lost"`
	Abandoned      int            `json:"abandoned"`
	AwaitingHuman  int            `json:"awaiting_human"`
	ConversionRate float64        `json:"conversion_rate"`
}

// LeadReport counts leads per qualification stage.
type LeadReport struct {
	Stages       map[string]int `json:"stages"`
	Total        int            `json:"total"`
	AverageScore float64        `json:"average_score"`
}

// Overview is the headline numbers for a tenant.
type Overview struct {
	Users         int `json:"users"`
	Conversations int `json:"conversations"`
	Messages      int `json:"messages"`
	Leads         int `json:"leads"`
}
