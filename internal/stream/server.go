package stream

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const page = `<!doctype html>
<html><head><title>rdsim</title>
<style>body{background:#111;color:#ccc;font-family:monospace}canvas{image-rendering:pixelated;width:600px;height:600px}</style>
</head><body>
<div id="info">connecting</div><canvas id="c"></canvas>
<script>
const c = document.getElementById("c"), info = document.getElementById("info");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (ev) => {
  const m = JSON.parse(ev.data);
  if (m.type === "hello") { c.width = c.height = m.n; info.textContent = "F=" + m.f + " k=" + m.k; return; }
  const px = atob(m.pixels), img = c.getContext("2d").createImageData(m.n, m.n);
  for (let i = 0; i < px.length; i++) { const v = px.charCodeAt(i); img.data.set([v, v, v, 255], i * 4); }
  c.getContext("2d").putImageData(img, 0, 0);
  info.textContent = "frame " + m.index + " step " + m.step;
};
</script></body></html>`

// Handler serves the viewer page at / and the socket at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	})
	mux.Handle("/ws", h)
	return mux
}

// ListenAndServe runs the HTTP server until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("serving", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
