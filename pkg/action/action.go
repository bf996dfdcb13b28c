// Package action validates and parses the replies of robot brains.
//
// A reply is a JSON object with the optional keys
//
//	action  one of "idle", "move", "attack", "turn"
//	x, y    numbers in [-1, 1], the move offset
//	dir     number, the heading to turn to
//
// JSON null counts as absent. Unknown keys are ignored.
package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// MaxLength is the largest reply body accepted, in bytes
const MaxLength = 256

var (
	// ErrBadResponse is a reply rejected before parsing
	ErrBadResponse = errors.New("BadResponse")
	// ErrActionParse is a reply that is not a valid action object
	ErrActionParse = errors.New("ActionParseError")
)

// Kind is the action a reply asks for
type Kind string

// Action kinds. None means the reply carried no action.
const (
	None   Kind = ""
	Idle   Kind = "idle"
	Move   Kind = "move"
	Attack Kind = "attack"
	Turn   Kind = "turn"
)

var kinds = map[Kind]bool{Idle: true, Move: true, Attack: true, Turn: true}

// Action is a parsed reply. Absent numbers are zero.
type Action struct {
	Kind Kind
	X    float64
	Y    float64
	Dir  float64
}

// Validate checks status and size of a reply
func Validate(status int, body []byte) error {
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrBadResponse, status)
	}
	if len(body) > MaxLength {
		return fmt.Errorf("%w: body longer than %d bytes", ErrBadResponse, MaxLength)
	}
	return nil
}

// Parse decodes body into an Action
func Parse(body []byte) (Action, error) {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrActionParse, err)
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return Action{}, fmt.Errorf("%w: reply is not an object", ErrActionParse)
	}

	var a Action
	if v, ok := present(obj, "action"); ok {
		s, isString := v.(string)
		if !isString || !kinds[Kind(s)] {
			return Action{}, fmt.Errorf("%w: action %v", ErrActionParse, v)
		}
		a.Kind = Kind(s)
	}

	var err error
	if a.X, err = unit(obj, "x"); err != nil {
		return Action{}, err
	}
	if a.Y, err = unit(obj, "y"); err != nil {
		return Action{}, err
	}
	if v, ok := present(obj, "dir"); ok {
		f, isNumber := v.(float64)
		if !isNumber {
			return Action{}, fmt.Errorf("%w: dir %v", ErrActionParse, v)
		}
		a.Dir = f
	}
	return a, nil
}

// Decode validates and parses a reply
func Decode(status int, body []byte) (Action, error) {
	if err := Validate(status, body); err != nil {
		return Action{}, err
	}
	return Parse(body)
}

// present treats null and false like a missing key
func present(obj map[string]interface{}, key string) (interface{}, bool) {
	v, ok := obj[key]
	if !ok || v == nil || v == false {
		return nil, false
	}
	return v, true
}

func unit(obj map[string]interface{}, key string) (float64, error) {
	v, ok := present(obj, key)
	if !ok {
		return 0, nil
	}
	f, isNumber := v.(float64)
	if !isNumber || f < -1 || f > 1 {
		return 0, fmt.Errorf("%w: %s %v", ErrActionParse, key, v)
	}
	return f, nil
}
