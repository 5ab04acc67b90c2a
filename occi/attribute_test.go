// Copyright 2017 Cloudfoam, Inc.
// This software is released under an MIT/X11 open source license.

package occi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudfoam/go-occi/occi"
)

func TestParseAttributeValues(t *testing.T) {
	tests := []struct {
		name  string
		typ   occi.AttributeType
		raw   string
		value interface{}
		fails bool
	}{
		{"string", occi.TypeString, "hello", "hello", false},
		{"int", occi.TypeInt, "4", int64(4), false},
		{"int negative", occi.TypeInt, "-17", int64(-17), false},
		{"int garbage", occi.TypeInt, "four", nil, true},
		{"int float", occi.TypeInt, "4.5", nil, true},
		{"float", occi.TypeFloat, "2.5", 2.5, false},
		{"float int", occi.TypeFloat, "2", 2.0, false},
		{"float garbage", occi.TypeFloat, "fast", nil, true},
		{"bool true", occi.TypeBool, "true", true, false},
		{"bool false", occi.TypeBool, "false", false, false},
		{"bool yes", occi.TypeBool, "yes", nil, true},
		{"bool caps", occi.TypeBool, "True", nil, true},
		{"list empty", occi.TypeStringList, "[]", []string{}, false},
		{"list one", occi.TypeStringList, `["a"]`, []string{"a"}, false},
		{"list two", occi.TypeStringList, `["a", "b"]`, []string{"a", "b"}, false},
		{"list escaped", occi.TypeStringList, `["a\"b"]`, []string{`a"b`}, false},
		{"list unterminated", occi.TypeStringList, `["a"`, nil, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(tt *testing.T) {
			value, err := test.typ.Parse("attr", test.raw)
			if test.fails {
				assert.Error(tt, err)
				var mismatch occi.ErrTypeMismatch
				if assert.IsType(tt, mismatch, err) {
					assert.Equal(tt, "attr", err.(occi.ErrTypeMismatch).Name)
				}
			} else if assert.NoError(tt, err) {
				assert.Equal(tt, test.value, value)
			}
		})
	}
}

func TestFormatAttributeValues(t *testing.T) {
	tests := []struct {
		name      string
		typ       occi.AttributeType
		value     interface{}
		formatted string
	}{
		{"string", occi.TypeString, "hello", "hello"},
		{"int", occi.TypeInt, int64(4), "4"},
		{"float", occi.TypeFloat, 2.5, "2.5"},
		{"float whole", occi.TypeFloat, 2.0, "2"},
		{"bool", occi.TypeBool, true, "true"},
		{"list", occi.TypeStringList, []string{"a", "b"}, `["a", "b"]`},
		{"list quote", occi.TypeStringList, []string{`a"b`}, `["a\"b"]`},
	}
	for _, test := range tests {
		t.Run(test.name, func(tt *testing.T) {
			assert.Equal(tt, test.formatted, test.typ.Format(test.value))
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		typ   occi.AttributeType
		value interface{}
	}{
		{"int", occi.TypeInt, int64(-42)},
		{"float", occi.TypeFloat, 0.125},
		{"bool", occi.TypeBool, false},
		{"list", occi.TypeStringList, []string{`quo"te`, `back\slash`, ""}},
	}
	for _, test := range tests {
		t.Run(test.name, func(tt *testing.T) {
			back, err := test.typ.Parse("attr", test.typ.Format(test.value))
			if assert.NoError(tt, err) {
				assert.Equal(tt, test.value, back)
			}
		})
	}
}

func TestQuoted(t *testing.T) {
	assert.True(t, occi.TypeString.Quoted())
	assert.False(t, occi.TypeInt.Quoted())
	assert.False(t, occi.TypeFloat.Quoted())
	assert.False(t, occi.TypeBool.Quoted())
	assert.False(t, occi.TypeStringList.Quoted())
}
