// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for agent integration over stdio
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/mycrew/mycrew/handlers"
	"github.com/mycrew/mycrew/store"
)

// NewMCPServer builds the server with every tool, resource and prompt registered.
func NewMCPServer(s store.Store, version string) *mcp.Server {
	contactHandlers := handlers.NewContactHandlers(s)
	qrHandlers := handlers.NewQRHandlers(s)
	vizHandlers := handlers.NewVizHandlers(s)
	resourceHandlers := handlers.NewResourceHandlers(s)
	promptHandlers := handlers.NewPromptHandlers(s)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mycrew",
		Version: version,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a crew member with job titles and work locations",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search crew members by name, title, phone, email or place, or look up a name and phone pair",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "encode_qr_payload",
		Description: "Encode 1 to 10 contacts into the text of one QR share code",
	}, qrHandlers.EncodeQRPayload)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "decode_qr_payload",
		Description: "Classify and decode text read from a QR code without storing anything",
	}, qrHandlers.DecodeQRPayload)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "estimate_qr_capacity",
		Description: "Estimate whether a set of contacts fits in one QR code and at which error correction level",
	}, qrHandlers.EstimateQRCapacity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_qr_payload",
		Description: "Decode a QR payload and import its contacts, merging, skipping or adding duplicates",
	}, qrHandlers.ImportQRPayload)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_location_graph",
		Description: "Generate a GraphViz graph of where the crew works",
	}, vizHandlers.GenerateLocationGraph)

	// Register resources
	server.AddResource(&mcp.Resource{
		URI:      "mycrew://contacts",
		Name:     "contacts",
		MIMEType: "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "mycrew://contacts/{id}",
		Name:        "contact",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:      "mycrew://dashboard",
		Name:     "dashboard",
		MIMEType: "text/plain",
	}, resourceHandlers.ReadResource)

	// Register prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "share-crew",
		Description: "Pick crew members for a request and prepare QR share batches",
		Arguments: []*mcp.PromptArgument{
			{Name: "query", Description: "Search text such as a job title or a city"},
		},
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(s store.Store, version string) error {
	zap.L().Info("starting MCP server", zap.String("version", version))

	// Run server on stdio transport
	ctx := context.Background()
	return NewMCPServer(s, version).Run(ctx, &mcp.StdioTransport{})
}
