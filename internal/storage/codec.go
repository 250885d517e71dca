package storage

import (
	"encoding/json"
	"errors"

	"antcolony/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.Run) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.Run, error) {
	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return model.Run{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func EncodeBrain(b model.Brain) ([]byte, error) {
	return json.Marshal(b)
}

func DecodeBrain(data []byte) (model.Brain, error) {
	var brain model.Brain
	if err := json.Unmarshal(data, &brain); err != nil {
		return model.Brain{}, err
	}
	if err := checkVersion(brain.VersionedRecord); err != nil {
		return model.Brain{}, err
	}
	if len(brain.Values) != brain.States*brain.Actions {
		return model.Brain{}, errors.New("brain values do not match table dimensions")
	}
	return brain, nil
}

func EncodeCumulative(c model.Cumulative) ([]byte, error) {
	return json.Marshal(c)
}

func DecodeCumulative(data []byte) (model.Cumulative, error) {
	var cumulative model.Cumulative
	if err := json.Unmarshal(data, &cumulative); err != nil {
		return model.Cumulative{}, err
	}
	if err := checkVersion(cumulative.VersionedRecord); err != nil {
		return model.Cumulative{}, err
	}
	return cumulative, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
