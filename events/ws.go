package events

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/athena3d/athena-backend/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
)

// Feed expõe o fluxo de eventos do marketplace por WebSocket para
// indexadores e para a UI.
type Feed struct {
	Bus      *Bus
	upgrader websocket.Upgrader
}

func NewFeed(bus *Bus) *Feed {
	return &Feed{
		Bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Em produção, validar a origem aqui.
				return true
			},
		},
	}
}

// HandleConnection faz o upgrade da conexão, entrega o catch-up pedido
// em ?since=N e passa a transmitir os eventos novos.
// GET /events/ws
func (f *Feed) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Falha ao fazer upgrade da conexão WebSocket: %v", err)
		return
	}

	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "parâmetro since inválido"),
				time.Now().Add(writeWait))
			conn.Close()
			return
		}
	}

	// Assinar antes do catch-up evita janela de perda entre as duas fases;
	// eventos duplicados são filtrados pela sequência.
	ch, cancel := f.Bus.Subscribe(256)
	done := make(chan struct{})
	go f.readPump(conn, done)
	go f.writePump(conn, ch, cancel, since, done)
}

// readPump descarta mensagens do cliente (o feed é somente leitura) e
// mantém o prazo de leitura renovado pelos pongs; quando a conexão cai,
// avisa o writePump por done.
func (f *Feed) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(conn *websocket.Conn, ch <-chan models.Event, cancel func(), since uint64, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		conn.Close()
	}()

	lastSeq := since
	for _, ev := range f.Bus.Since(since) {
		if err := writeEvent(conn, ev); err != nil {
			return
		}
		lastSeq = ev.Seq
	}

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Seq <= lastSeq {
				continue
			}
			if err := writeEvent(conn, ev); err != nil {
				return
			}
			lastSeq = ev.Seq
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev models.Event) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}
