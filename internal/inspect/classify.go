package inspect

import (
	"fmt"
	"strings"

	"github.com/danmuck/boltwire/internal/observability"
	"github.com/danmuck/boltwire/internal/types"
	"github.com/danmuck/boltwire/internal/value"
)

// ClassifyResult names the coarse type of a value. Value echoes the input as
// the codec sees it after conversion.
type ClassifyResult struct {
	Type      string `json:"type" yaml:"type"`
	Numeric   bool   `json:"numeric" yaml:"numeric"`
	Encodable bool   `json:"encodable" yaml:"encodable"`
	Value     any    `json:"value" yaml:"value"`
	Covers    string `json:"covers,omitempty" yaml:"covers,omitempty"`
	Covered   *bool  `json:"covered,omitempty" yaml:"covered,omitempty"`
}

// Classify converts raw into the value union and classifies it.
func Classify(raw any) (ClassifyResult, error) {
	v, err := value.Of(raw)
	if err != nil {
		return ClassifyResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return ClassifyValue(v)
}

func ClassifyValue(v value.Value) (ClassifyResult, error) {
	t, err := types.TypeOf(v)
	if err != nil {
		return ClassifyResult{}, err
	}
	observability.RecordClassification(t.Name())
	return ClassifyResult{
		Type:      t.Name(),
		Numeric:   types.Number.Covers(t),
		Encodable: encodable(t),
		Value:     value.Native(v),
	}, nil
}

// ClassifyAgainst classifies raw and reports whether the named type covers it.
func ClassifyAgainst(raw any, typeName string) (ClassifyResult, error) {
	want, ok := types.ByName(strings.ToUpper(strings.TrimSpace(typeName)))
	if !ok {
		return ClassifyResult{}, fmt.Errorf("%w: unknown cypher type %q", ErrInvalidRequest, typeName)
	}
	res, err := Classify(raw)
	if err != nil {
		return ClassifyResult{}, err
	}
	got, _ := types.ByName(res.Type)
	covered := want.Covers(got)
	res.Covers = want.Name()
	res.Covered = &covered
	return res, nil
}

// encodable reports whether values of t can be sent to the server.
func encodable(t *types.CoarseCypherType) bool {
	switch t {
	case types.Identity, types.Node, types.Relationship, types.Path:
		return false
	}
	return true
}
