package rest

import (
	"net/http"
	"time"

	"github.com/KevinKickass/OpenRelayCore/internal/command"
	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"github.com/gin-gonic/gin"
)

const indexTemplateName = "index"

const indexHTML = `<html><body><h1>Relay Controller</h1>
<p>Device: {{.DeviceName}}</p>
<p>IP: {{.IPAddress}}</p>
<p>WebSocket: ws://{{.Host}}/ws</p>
<h2>Relay Status:</h2>
{{range .Relays}}<p>{{.Name}} (GPIO {{.Pin}}): {{.StateLabel}}</p>
{{end}}</body></html>`

type indexData struct {
	DeviceName string
	IPAddress  string
	Host       string
	Relays     []types.Relay
}

type infoResponse struct {
	DeviceName string              `json:"device_name"`
	DeviceType string              `json:"device_type"`
	IPAddress  string              `json:"ip_address"`
	MACAddress string              `json:"mac_address"`
	NumRelays  int                 `json:"num_relays"`
	Relays     []command.RelayView `json:"relays"`
}

// GET /
func (s *Server) indexPage(c *gin.Context) {
	ctrl := s.lm.Controller()
	c.HTML(http.StatusOK, indexTemplateName, indexData{
		DeviceName: ctrl.DeviceName(),
		IPAddress:  s.lm.NetworkInfo().IPAddress,
		Host:       c.Request.Host,
		Relays:     ctrl.Snapshot(),
	})
}

// GET /info
func (s *Server) deviceInfo(c *gin.Context) {
	ctrl := s.lm.Controller()
	network := s.lm.NetworkInfo()
	relays := ctrl.Snapshot()

	c.JSON(http.StatusOK, infoResponse{
		DeviceName: ctrl.DeviceName(),
		DeviceType: s.lm.Config().Device.Type,
		IPAddress:  network.IPAddress,
		MACAddress: network.MACAddress,
		NumRelays:  len(relays),
		Relays:     command.Views(relays),
	})
}

// GET /api/system/status
func (s *Server) getSystemStatus(c *gin.Context) {
	status := s.lm.GetCurrentStatus()
	c.JSON(http.StatusOK, status)
}

// GET /health
func (s *Server) healthCheck(c *gin.Context) {
	status := s.lm.GetCurrentStatus()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"state":     status.State,
		"timestamp": time.Now().Unix(),
	})
}
