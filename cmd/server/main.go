package main

import (
	"os"

	"prism-ai/backend/internal/app"
)

//	@title       Prism AI Backend API
//	@version     1.0
//	@description Orchestrated chat backend with streaming responses and tiered memory.
//	@BasePath    /api/v1

func main() {
	os.Exit(app.Run())
}
