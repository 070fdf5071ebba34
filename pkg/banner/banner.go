package banner

import (
	"fmt"
)

const banner = `
 ██████╗██╗  ██╗ █████╗ ████████╗██████╗
██╔════╝██║  ██║██╔══██╗╚══██╔══╝██╔══██╗
██║     ███████║███████║   ██║   ██║  ██║
██║     ██╔══██║██╔══██║   ██║   ██║  ██║
╚██████╗██║  ██║██║  ██║   ██║   ██████╔╝
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═════╝
`

// Print writes the startup banner with the effective runtime info.
func Print(addr, dbPath, sources, version, completionState string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:     %s\n", addr)
	fmt.Printf("DB Path:    %s\n", dbPath)
	fmt.Printf("Completion: %s\n", completionState)
	if version != "" {
		fmt.Printf("Version:    %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST   /chat          - Send a message (JSON: threadId?, message)")
	fmt.Println("GET    /threads       - List the caller's threads (newest first)")
	fmt.Println("GET    /threads/{id}  - Fetch one thread with full history")
	fmt.Println("DELETE /threads/{id}  - Delete a thread and its messages")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/chat' -d '{\"message\": \"hello\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/threads'\n", addr)
}
