package main

const (
	RouteStartGame = "/api/game/start"
	RouteSubmit    = "/api/game/submit"
	RouteRanking   = "/api/ranking"
	RouteHealthz   = "/healthz"
)

// User-visible submission messages. Integrity and anomaly rejections share
// one non-committal message so exact anti-cheat thresholds stay opaque.
const (
	MsgSessionRestart = "session expired or invalid, please start a new game"
	MsgTryLater       = "temporary problem, please try again later"
	MsgNotVerified    = "submission could not be verified"
)
