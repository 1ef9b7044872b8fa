package utils

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

func Serialize(o any) ([]byte, error) {
	return json.Marshal(o)
}

func Unserialize(b []byte, o any) error {
	return json.Unmarshal(b, o)
}

func SerializeYAML(o any) ([]byte, error) {
	return yaml.Marshal(o)
}

func UnserializeYAML(b []byte, o any) error {
	return yaml.Unmarshal(b, o)
}
