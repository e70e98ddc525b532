package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dyme-cli/internal/logger"
	"dyme-cli/internal/provider"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
)

const (
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// ErrStop may be returned by a Handler to end the subscription cleanly
var ErrStop = errors.New("stop watching")

// Notification is one account change pushed by the cluster
type Notification struct {
	Slot     uint64
	Lamports uint64
}

type Handler func(Notification) error

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcMessage struct {
	ID     *uint64         `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	Params struct {
		Subscription uint64 `json:"subscription"`
		Result       struct {
			Context struct {
				Slot uint64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Lamports uint64 `json:"lamports"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Subscribe streams changes to account until ctx is done, the server closes
// the connection, or fn returns ErrStop. Any other error from fn is returned.
func Subscribe(ctx context.Context, prov *provider.Provider, account solana.PublicKey, fn Handler) error {
	dialer := &websocket.Dialer{
		HandshakeTimeout:  45 * time.Second,
		EnableCompression: true,
	}

	conn, _, err := dialer.DialContext(ctx, prov.WSEndpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", prov.WSEndpoint, err)
	}
	defer conn.Close()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	// Started before the handshake so cancellation also ends a stalled subscribe
	done := make(chan struct{})
	defer close(done)
	go heartbeat(ctx, conn, done)

	subID, err := subscribe(conn, account, prov)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	logger.Debug("subscribed to %s (subscription %d)", account, subID)

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return err
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("subscription closed by server: %v", err)
				return nil
			}
			return fmt.Errorf("subscription connection error: %w", err)
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		var msg rpcMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("ignoring malformed message: %v", err)
			continue
		}
		if msg.Method != "accountNotification" || msg.Params.Subscription != subID {
			continue
		}

		err = fn(Notification{
			Slot:     msg.Params.Result.Context.Slot,
			Lamports: msg.Params.Result.Value.Lamports,
		})
		if errors.Is(err, ErrStop) {
			closeGracefully(conn, "done")
			return nil
		}
		if err != nil {
			closeGracefully(conn, "handler error")
			return err
		}
	}
}

func subscribe(conn *websocket.Conn, account solana.PublicKey, prov *provider.Provider) (uint64, error) {
	const requestID = 1

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      requestID,
		Method:  "accountSubscribe",
		Params: []interface{}{
			account.String(),
			map[string]string{
				"encoding":   "base64",
				"commitment": string(prov.Commitment),
			},
		},
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(req); err != nil {
		return 0, fmt.Errorf("failed to send accountSubscribe: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	for {
		var msg rpcMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return 0, fmt.Errorf("failed to read subscription response: %w", err)
		}
		if msg.ID == nil || *msg.ID != requestID {
			continue
		}
		if msg.Error != nil {
			return 0, fmt.Errorf("accountSubscribe failed: %w", msg.Error)
		}

		var subID uint64
		if err := json.Unmarshal(msg.Result, &subID); err != nil {
			return 0, fmt.Errorf("unexpected subscription id %s: %w", msg.Result, err)
		}
		return subID, nil
	}
}

// heartbeat pings the server and closes the connection once ctx is done
func heartbeat(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			closeGracefully(conn, "client shutdown")
			conn.Close()
			return
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout))
			if err != nil {
				logger.Warning("Failed to send ping: %v", err)
				conn.Close()
				return
			}
		}
	}
}

func closeGracefully(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		logger.Debug("Failed to send close frame: %v", err)
	}
}
