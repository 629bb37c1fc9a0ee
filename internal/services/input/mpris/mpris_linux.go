//go:build linux

// Package mpris exposes the player on the session bus as an MPRIS
// MediaPlayer2 service. Desktop media keys translate into queued player
// commands; nothing here touches the player context directly.
package mpris

import (
	"fmt"
	"strconv"

	"github.com/godbus/dbus/v5"

	"playercore/internal/domain/ports"
	"playercore/internal/services/input"
)

const (
	mprisInterface       = "org.mpris.MediaPlayer2"
	mprisPlayerInterface = "org.mpris.MediaPlayer2.Player"
	mprisBusName         = "org.mpris.MediaPlayer2.playercore"
	mprisObjectPath      = "/org/mpris/MediaPlayer2"
)

type Service struct {
	conn  *dbus.Conn
	queue *input.Queue
}

func New(queue *input.Queue) (*Service, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}

	reply, err := conn.RequestName(mprisBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name already taken")
	}

	s := &Service{conn: conn, queue: queue}
	if err := conn.Export(s, dbus.ObjectPath(mprisObjectPath), mprisInterface); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Export(s, dbus.ObjectPath(mprisObjectPath), mprisPlayerInterface); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) Close() error { return s.conn.Close() }

// MediaPlayer2.Player methods. Each pushes a command and returns; the
// loop picks it up on its next tick.

func (s *Service) Play() *dbus.Error {
	s.queue.Push(ports.Command{Name: "set-pause", Args: []string{"false"}})
	return nil
}

func (s *Service) Pause() *dbus.Error {
	s.queue.Push(ports.Command{Name: "set-pause", Args: []string{"true"}})
	return nil
}

func (s *Service) PlayPause() *dbus.Error {
	s.queue.Push(ports.Command{Name: "cycle-pause"})
	return nil
}

func (s *Service) Stop() *dbus.Error {
	s.queue.Push(ports.Command{Name: "stop"})
	return nil
}

func (s *Service) Next() *dbus.Error {
	s.queue.Push(ports.Command{Name: "playlist-next"})
	return nil
}

func (s *Service) Previous() *dbus.Error {
	s.queue.Push(ports.Command{Name: "playlist-prev"})
	return nil
}

// Seek takes an offset in microseconds, per the MPRIS spec.
func (s *Service) Seek(offsetUS int64) *dbus.Error {
	offset := float64(offsetUS) / 1e6
	s.queue.Push(ports.Command{
		Name: "seek",
		Args: []string{strconv.FormatFloat(offset, 'f', -1, 64), "relative"},
	})
	return nil
}

func (s *Service) SetPosition(_ dbus.ObjectPath, positionUS int64) *dbus.Error {
	pos := float64(positionUS) / 1e6
	s.queue.Push(ports.Command{
		Name: "seek",
		Args: []string{strconv.FormatFloat(pos, 'f', -1, 64), "absolute", "exact"},
	})
	return nil
}
