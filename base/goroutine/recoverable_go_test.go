package goroutine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/x-xyz/goauction/base/log"
)

func TestRecoverableGo(t *testing.T) {
	res := []string{}

	<-RecoverableGo(
		func() {
			res = append(res, "run task")
			panic("panic")
		},
		WithName("test"),
		WithLogger(log.Nop()),
		WithBeforeStart(func() {
			res = append(res, "before start")
		}),
		WithAfterEnded(func() {
			res = append(res, "after ended")
		}),
		WithAfterRecovered(func(p interface{}, stack []byte) {
			res = append(res, "after recovered")
			res = append(res, p.(string))
		}),
	)

	assert.Equal(t, []string{
		"before start",
		"run task",
		"after ended",
		"after recovered",
		"panic",
	}, res)
}

func TestRecoverableGoNoPanic(t *testing.T) {
	ran := false
	ev, ok := <-RecoverableGo(func() { ran = true })
	assert.True(t, ran)
	assert.False(t, ok)
	assert.Nil(t, ev)
}
