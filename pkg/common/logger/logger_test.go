package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nektos/stv/pkg/common"
)

func TestCommandLoggerText(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithCommandLogger(context.Background(), "coalition", Options{Level: log.InfoLevel, Output: buf})

	common.Logger(ctx).WithField("target", "Carol").Infof("pool of %d", 4)
	common.Logger(ctx).Debugf("hidden")

	assert.Equal(t, "[coalition] pool of 4 target=Carol\n", buf.String())
}

func TestCommandLoggerJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithCommandLogger(context.Background(), "tree", Options{JSON: true, Level: log.DebugLevel, Output: buf})

	common.Logger(ctx).Debugf("round %d", 2)

	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tree", entry["command"])
	assert.Equal(t, "round 2", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
}
