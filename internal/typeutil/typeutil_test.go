package typeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_IsNil(t *testing.T) {
	var (
		nilPtr   *int
		nilMap   map[string]int
		nilSlice []int
		nilFunc  func()
		nilChan  chan int
		nilIface error
	)

	tests := []struct {
		name string
		v    any
		want bool
	}{
		{name: "nil", v: nil, want: true},
		{name: "nil pointer", v: nilPtr, want: true},
		{name: "nil map", v: nilMap, want: true},
		{name: "nil slice", v: nilSlice, want: true},
		{name: "nil func", v: nilFunc, want: true},
		{name: "nil chan", v: nilChan, want: true},
		{name: "nil interface", v: nilIface, want: true},
		{name: "pointer", v: new(int), want: false},
		{name: "chan", v: make(chan int), want: false},
		{name: "struct", v: struct{}{}, want: false},
		{name: "zero int", v: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNil(tt.v))
		})
	}
}
