package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetLoggerNilRestoresNoop(t *testing.T) {
	SetLogger(zap.NewExample())
	assert.NotNil(t, Lexer)

	SetLogger(nil)
	assert.NotNil(t, Lexer)
	assert.NotNil(t, Parser)
	assert.NotNil(t, XRef)
	assert.NotNil(t, Writer)
}

func TestNamedLoggersAreIndependentInstances(t *testing.T) {
	SetLogger(nil)
	assert.NotSame(t, Lexer, Parser)
}
