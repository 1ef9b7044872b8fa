package server

import (
	"github.com/mcuadros/go-defaults"
)

func NewOptions() *Options {
	opts := &Options{}
	defaults.SetDefaults(opts)
	return opts
}

/**
 * Options configure the HTTP layer. Paths follow the original deploy
 * layout: one input dataset next to the process and an output
 * directory the download routes serve from.
 */
type Options struct {
	Host string `default:"0.0.0.0"`
	Port int    `default:"5001"`

	/**
	 * StaticDir points at the builder UI build output. Empty disables
	 * static serving.
	 */
	StaticDir string

	InputFile string `default:"pill_data.csv"`
	OutputDir string `default:"processed_output"`

	/**
	 * DefaultDataset picks the Source subgraph when a request does
	 * not name one.
	 */
	DefaultDataset string

	StrictColumns bool `default:"false"`

	MaxConcurrentRuns int `default:"4"`
}
