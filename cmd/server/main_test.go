package main

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitForShutdown_Signal(t *testing.T) {
	quit := make(chan os.Signal, 1)
	quit <- syscall.SIGTERM
	assert.NoError(t, waitForShutdown(quit, make(chan error)))
}

func TestWaitForShutdown_ListenFailure(t *testing.T) {
	// 端口被占用之类的监听失败要带出去，进程以非零码退出
	errCh := make(chan error, 1)
	boom := errors.New("listen tcp :8080: bind: address already in use")
	errCh <- boom
	err := waitForShutdown(make(chan os.Signal), errCh)
	assert.ErrorIs(t, err, boom)
}
