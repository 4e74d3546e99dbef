// Package wire is the JSON protocol between the prompt controller and a
// host. Inbound frames are prompt events ({"channel":"VALUE_SUBMITTED",
// "value":...}); outbound frames carry a channel name next to their fields
// ({"channel":"SET_PANEL","html":...}). Frames are encoded with sonic.
//
// Renderer turns prompt render calls into frames and Inbox queues decoded
// events for the prompt loop; the websocket and stdio transports are built
// from these two pieces.
package wire
