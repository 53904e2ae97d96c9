package client_test

import (
	"context"
	"errors"
	"testing"

	"callroom/client"
	"callroom/pkg/socket"
	"callroom/types/rpc"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

// blockedReads makes ReadJSON block until the socket is closed.
func blockedReads(s *socket.MockSocket, closeErr error) {
	unblock := make(chan struct{})
	s.EXPECT().ReadJSON(gomock.Any()).DoAndReturn(func(any) error {
		<-unblock
		return errors.New("use of closed connection")
	}).AnyTimes()
	s.EXPECT().Close().DoAndReturn(func() error {
		close(unblock)
		return closeErr
	})
}

func TestSocketFailures(t *testing.T) {
	t.Run("given a failing socket close when closed then the error is reported once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := socket.NewMockSocket(ctrl)
		blockedReads(s, errors.New("boom"))

		c := client.New(s, client.Config{}, nil)
		err := <-c.Close()
		assert.ErrorContains(t, err, "failed to close socket")
		assert.NoError(t, <-c.Close())
	})

	t.Run("given a failing write when joining then the request fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := socket.NewMockSocket(ctrl)
		blockedReads(s, nil)
		s.EXPECT().WriteJSON(gomock.Any()).Return(errors.New("broken pipe"))

		c := client.New(s, client.Config{}, nil)
		_, err := c.JoinRoom(context.Background(), "room42", "alice")
		assert.ErrorContains(t, err, "failed to send "+rpc.JoinRoom)
		assert.NoError(t, <-c.Close())
	})

	t.Run("given no room when sending a message then not joined", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := socket.NewMockSocket(ctrl)
		blockedReads(s, nil)

		c := client.New(s, client.Config{}, nil)
		assert.ErrorIs(t, c.SendMessage(context.Background(), "hi"), client.ErrNotJoined)
		assert.NoError(t, <-c.Close())
	})
}
