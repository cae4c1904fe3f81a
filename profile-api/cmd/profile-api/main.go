package main

import (
	"github.com/fernsky/digital-profile/profile-api/internal/bootstrap"
)

// @schemes http https

// @title Digital Profile API
// @version 1.0
// @description Ward-level statistics of the municipal digital profile: summaries, charts, structured data and Excel reports.

// @BasePath /api/v1

func main() {
	bootstrap.Bootstrap()
}
