package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rovernet/protocol"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃），返回是否入队
func (c *ClientConn) Enqueue(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		// 队列满：丢弃，避免阻塞 Tick
		return false
	}
}

// Close 关闭发送队列，写协程随之退出并关闭底层连接
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Transport WebSocket 接入层：连接以指挥方地址登记，入站命令信封校验后提交给世界
type Transport struct {
	world *World
	conns *ConnManager

	upgrader websocket.Upgrader
}

func NewTransport(world *World, conns *ConnManager) *Transport {
	return &Transport{
		world: world,
		conns: conns,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 发送方一律视为可信（不做鉴权）
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// readPump 读取指挥方的命令信封，转换为 Inbound 注入世界
func (t *Transport) readPump(c *ClientConn, address string) {
	defer func() {
		t.conns.Unregister(address, c)
		c.Close()
		Log.Infof("controller disconnected: %s", address)
	}()
	c.ws.SetReadLimit(1 << 20) // 1MB
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.DecodeCommand(payload)
		if err != nil {
			t.world.metrics.IncRejected()
			Log.Debugf("envelope rejected from %s: %v", address, err)
			continue
		}
		t.world.Submit(Inbound{ID: env.ID, Target: env.To, Msg: *env.Command, Sender: address})
	}
}

// HandleWS WebSocket 接入：/ws?address=controller@x
func (t *Transport) HandleWS(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "missing address query", http.StatusBadRequest)
		return
	}

	ws, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(ws)
	if old := t.conns.Register(address, client); old != nil {
		old.Close()
	}
	Log.Infof("controller connected: %s", address)

	go client.writePump()
	go t.readPump(client, address)
}
