package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/KevinKickass/OpenRelayCore/internal/command"
	"github.com/KevinKickass/OpenRelayCore/internal/controller"
	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json"

type controlResponse struct {
	Success bool `json:"success"`
	Relay   int  `json:"relay"`
	State   bool `json:"state"`
}

type batchControlResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func errorJSON(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func (s *Server) invalidRelayID(c *gin.Context) {
	errorJSON(c, http.StatusBadRequest,
		fmt.Sprintf("Invalid relay ID. Must be between 1 and %d", s.lm.Controller().RelayCount()))
}

// parseRelayID maps anything that is not an integer to 0, which is never a
// valid id.
func parseRelayID(raw string) int {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return id
}

// GET /api/relays
func (s *Server) listRelays(c *gin.Context) {
	out := s.lm.Controller().Execute(command.Global(command.ActionGetAllStatus), controller.OriginHTTP)
	c.Data(http.StatusOK, jsonContentType, command.FormatSnapshot(out.Affected))
}

// GET /api/relay?id=N
func (s *Server) getRelay(c *gin.Context) {
	raw, ok := c.GetQuery("id")
	if !ok {
		errorJSON(c, http.StatusBadRequest, "Missing relay ID parameter")
		return
	}

	out := s.lm.Controller().Execute(command.ForRelay(command.ActionGetStatus, parseRelayID(raw)), controller.OriginHTTP)
	if !out.OK {
		s.invalidRelayID(c)
		return
	}

	c.Data(http.StatusOK, jsonContentType, command.FormatRelay(out.Affected[0]))
}

// POST /api/relay/control?id=N&action=on|off|toggle
func (s *Server) controlRelay(c *gin.Context) {
	rawID, hasID := c.GetQuery("id")
	rawAction, hasAction := c.GetQuery("action")
	if !hasID || !hasAction {
		errorJSON(c, http.StatusBadRequest, "Missing required parameters: id and action")
		return
	}

	ctrl := s.lm.Controller()
	id := parseRelayID(rawID)
	if id < 1 || id > ctrl.RelayCount() {
		s.invalidRelayID(c)
		return
	}

	var action command.Action
	switch strings.ToLower(rawAction) {
	case "on", "1", "true":
		action = command.ActionTurnOn
	case "off", "0", "false":
		action = command.ActionTurnOff
	case "toggle":
		action = command.ActionToggle
	default:
		errorJSON(c, http.StatusBadRequest, "Invalid action. Use: on, off, or toggle")
		return
	}

	out := ctrl.Execute(command.ForRelay(action, id), controller.OriginHTTP)
	if !out.OK {
		s.invalidRelayID(c)
		return
	}

	c.JSON(http.StatusOK, controlResponse{
		Success: true,
		Relay:   id,
		State:   out.Affected[0].State,
	})
}

// POST /api/relays/all?action=on|off
func (s *Server) controlAllRelays(c *gin.Context) {
	rawAction, ok := c.GetQuery("action")
	if !ok {
		errorJSON(c, http.StatusBadRequest, "Missing action parameter")
		return
	}

	var (
		action  command.Action
		message string
	)
	switch strings.ToLower(rawAction) {
	case "on":
		action, message = command.ActionAllOn, "All relays turned ON"
	case "off":
		action, message = command.ActionAllOff, "All relays turned OFF"
	default:
		errorJSON(c, http.StatusBadRequest, "Invalid action. Use: on or off")
		return
	}

	s.lm.Controller().Execute(command.Global(action), controller.OriginHTTP)
	c.JSON(http.StatusOK, batchControlResponse{Success: true, Message: message})
}
