package types

import (
	"encoding/json"

	"github.com/juju/errors"
	"github.com/spf13/cast"
)

/**
 * Row is one record of the input dataset. Values follow the CSV typing
 * policy: nil for a blank cell, bool for true/false, float64 for anything
 * numeric, string for the rest.
 */
type Row map[string]any

func (r *Row) Get(key string) (any, bool) {
	v, exists := (*r)[key]
	return v, exists
}

func (r *Row) GetString(key string) (string, bool) {
	v, exists := r.Get(key)
	return cast.ToString(v), exists
}

func (r *Row) GetInt(key string) (int, bool) {
	v, exists := r.Get(key)
	return cast.ToInt(v), exists
}

func (r *Row) GetBool(key string) (bool, bool) {
	v, exists := r.Get(key)
	return cast.ToBool(v), exists
}

func (r *Row) GetFloat64(key string) (float64, bool) {
	v, exists := r.Get(key)
	return cast.ToFloat64(v), exists
}

func (r *Row) GetStruct(key string, s any) error {
	v, exists := r.Get(key)
	if !exists {
		return errors.NotFound
	}
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.New("marshal failed"))
	}
	return json.Unmarshal(b, s)
}

func (r *Row) Set(key string, value any) {
	(*r)[key] = value
}
