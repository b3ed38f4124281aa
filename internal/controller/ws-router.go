package controller

import (
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdMw())
	mux.Use(c.loggerWSMw())

	// room
	wsrouter.Handle(mux, "JOIN_ROOM", c.handleJoinRoom)

	// playback
	wsrouter.Handle(mux, "PLAY", c.handlePlay)
	wsrouter.Handle(mux, "PAUSE", c.handlePause)
	wsrouter.Handle(mux, "SEEK", c.handleSeek)
	wsrouter.Handle(mux, "CHANGE_MEDIA", c.handleChangeMedia)

	// chat
	wsrouter.Handle(mux, "SEND_MESSAGE", c.handleSendMessage)

	// signaling
	wsrouter.Handle(mux, "SIGNAL_OFFER", c.handleSignal("SIGNAL_OFFER"))
	wsrouter.Handle(mux, "SIGNAL_ANSWER", c.handleSignal("SIGNAL_ANSWER"))
	wsrouter.Handle(mux, "SIGNAL_ICE", c.handleSignal("SIGNAL_ICE"))

	// liveness
	wsrouter.Handle(mux, "ALIVE", c.handleAlive)

	return mux
}
