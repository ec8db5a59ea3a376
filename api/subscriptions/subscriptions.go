// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/transcranial/tcs/api/utils"
	"github.com/transcranial/tcs/engine"
	"github.com/transcranial/tcs/log"
	"github.com/transcranial/tcs/metrics"
	"github.com/transcranial/tcs/tcs"
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveSubscriptions = metrics.LazyLoadGaugeVec("api_active_subscriptions", []string{"subject"})
)

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 7) / 10
)

type Subscriptions struct {
	engine   *engine.Engine
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates the subscriptions service. Empty allowedOrigins accepts same origin requests only.
func New(eng *engine.Engine, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		engine: eng,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	if !s.engine.HasHistory() {
		return utils.HTTPError(engine.ErrNoHistory, http.StatusNotImplemented)
	}
	pos, err := utils.ParseUint64(req.URL.Query().Get("pos"), 0)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pos"))
	}

	var reader msgReader
	subject := mux.Vars(req)["subject"]
	switch subject {
	case "payout":
		var recipient *tcs.Address
		if v := req.URL.Query().Get("recipient"); v != "" {
			if recipient, err = tcs.ParseAddress(v); err != nil {
				return utils.BadRequest(errors.WithMessage(err, "recipient"))
			}
		}
		reader = newPayoutReader(s.engine, pos, recipient)
	case "distribution":
		reader = newDistributionReader(s.engine, pos)
	default:
		return utils.NotFound(errors.New("unknown subject"))
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned after this point
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	labels := map[string]string{"subject": subject}
	metricActiveSubscriptions().AddWithLabel(1, labels)
	defer metricActiveSubscriptions().AddWithLabel(-1, labels)

	if err := s.pipe(conn, reader); err != nil {
		logger.Debug("subscription closed", "subject", subject, "err", err)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return nil
}

// pipe writes messages read from reader to conn until the peer goes away or
// the service is closed. Nil is returned for a normal closure.
func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	closed := make(chan struct{})
	// the read loop handles control frames and detects the peer leaving
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		// taken before reading so that no commit is missed in between
		changed := s.engine.Changed()

		msgs, hasMore, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if hasMore {
			select {
			case <-s.done:
				return nil
			case <-closed:
				return nil
			default:
			}
			continue
		}

		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-changed:
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close ends all subscriptions and waits for them to exit.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").
		Methods(http.MethodGet).
		Name("WS /subscriptions").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
