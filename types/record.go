package types

import "time"

/**
 * RunRecord is the archived summary of one dataset run. The server
 * keeps one per processed workflow so run history stays reviewable
 * after the engine that produced it is gone.
 */
type RunRecord struct {
	ID          string    `json:"id"`
	Dataset     string    `json:"dataset,omitempty"`
	Nodes       int       `json:"nodes"`
	Connections int       `json:"connections"`
	OutputFile  string    `json:"output_file"`
	Stats       RunStats  `json:"stats"`
	CreatedAt   time.Time `json:"created_at"`
}
