// Package ws serves prompts to browser hosts over WebSocket.
//
// Each connection to /prompt/:name runs one catalog prompt. Frames are the
// same JSON objects the stdio transport uses, one per text message:
//
// Host → Server: CHOICES, NO_CHOICES, CHOICE_FOCUSED, GENERATE_CHOICES,
// TAB_CHANGED, VALUE_SUBMITTED, PROMPT_BLURRED
//
// Server → Host: SET_CHOICES, SET_PANEL, SET_PREVIEW, SET_HINT, SET_MODE,
// SET_PROMPT_DATA, SET_INPUT, SET_IGNORE_BLUR, then VALUE or ERROR once the
// prompt settles.
//
// Example Usage:
//
//	handler := ws.NewHandler(cat, logger, metrics, 0)
//	router.GET("/prompt/:name", handler.HandleConnection)
package ws
