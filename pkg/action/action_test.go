package action

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"ok", http.StatusOK, `{"action":"idle"}`, nil},
		{"not found", http.StatusNotFound, `{"action":"idle"}`, ErrBadResponse},
		{"server error", http.StatusInternalServerError, ``, ErrBadResponse},
		{"created is not ok", http.StatusCreated, `{}`, ErrBadResponse},
		{"max length", http.StatusOK, strings.Repeat(" ", MaxLength), nil},
		{"too long", http.StatusOK, strings.Repeat(" ", MaxLength+1), ErrBadResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.status, []byte(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Action
		wantErr error
	}{
		{"empty object", `{}`, Action{}, nil},
		{"idle", `{"action":"idle"}`, Action{Kind: Idle}, nil},
		{"move", `{"action":"move","x":0.5,"y":-1}`, Action{Kind: Move, X: 0.5, Y: -1}, nil},
		{"move defaults", `{"action":"move"}`, Action{Kind: Move}, nil},
		{"turn", `{"action":"turn","dir":-90}`, Action{Kind: Turn, Dir: -90}, nil},
		{"attack", `{"action":"attack"}`, Action{Kind: Attack}, nil},
		{"nulls are absent", `{"action":null,"x":null,"dir":null}`, Action{}, nil},
		{"false is absent", `{"action":false,"x":false,"y":false,"dir":false}`, Action{}, nil},
		{"true is not a value", `{"action":true}`, Action{}, ErrActionParse},
		{"false next to a move", `{"action":"move","x":0.5,"y":false}`, Action{Kind: Move, X: 0.5}, nil},
		{"extra keys ignored", `{"action":"idle","note":"hi"}`, Action{Kind: Idle}, nil},
		{"x out of range", `{"action":"move","x":2,"y":0}`, Action{}, ErrActionParse},
		{"y out of range", `{"action":"move","x":0,"y":-1.01}`, Action{}, ErrActionParse},
		{"x not a number", `{"action":"move","x":"1"}`, Action{}, ErrActionParse},
		{"dir not a number", `{"action":"turn","dir":"north"}`, Action{}, ErrActionParse},
		{"unknown action", `{"action":"fly"}`, Action{}, ErrActionParse},
		{"action not a string", `{"action":1}`, Action{}, ErrActionParse},
		{"array", `[]`, Action{}, ErrActionParse},
		{"null", `null`, Action{}, ErrActionParse},
		{"number", `42`, Action{}, ErrActionParse},
		{"garbage", `{"action":`, Action{}, ErrActionParse},
		{"empty", ``, Action{}, ErrActionParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == nil {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	_, err := Decode(http.StatusTeapot, []byte(`{"action":"idle"}`))
	assert.ErrorIs(t, err, ErrBadResponse)

	a, err := Decode(http.StatusOK, []byte(`{"action":"attack"}`))
	assert.NoError(t, err)
	assert.Equal(t, Attack, a.Kind)
}
