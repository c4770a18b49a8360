package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGORMLogWriter_WritesThroughZap(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	writer := &GORMLogWriter{logger: zap.New(core)}

	writer.Printf("%s [%.3fms] %s", "slow query", 250.0, "SELECT * FROM recipes")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "slow query [250.000ms] SELECT * FROM recipes", entries[0].Message)
	}
}
