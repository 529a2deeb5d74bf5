package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"serena/internal/project"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolProfile selects the tool schema variant registered with the server.
type ToolProfile string

const (
	// ProfileDefault registers full tool schemas.
	ProfileDefault ToolProfile = "default"

	// ProfileStrict registers the same tools with flattened, required-only
	// schemas for clients that reject optional or open-ended parameters.
	ProfileStrict ToolProfile = "strict"
)

// ParseToolProfile maps a user-supplied profile string to a ToolProfile.
func ParseToolProfile(s string) (ToolProfile, error) {
	switch ToolProfile(s) {
	case ProfileDefault, "":
		return ProfileDefault, nil
	case ProfileStrict:
		return ProfileStrict, nil
	default:
		return "", fmt.Errorf("unknown tool profile %q (want %q or %q)", s, ProfileDefault, ProfileStrict)
	}
}

type toolDefinition struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

// registerTools registers the full agent tool set for the configured
// profile. Registration is idempotent: re-entering it (for example after a
// coordinator restart) neither duplicates nor corrupts the registered set.
func (s *Server) registerTools(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registered {
		s.logger.Debug("Tools already registered, skipping")
		return nil
	}

	defs := s.toolDefinitions()
	for _, def := range defs {
		// Registration shares the process with live health probes; bail out
		// promptly on cancellation instead of finishing the batch.
		if err := ctx.Err(); err != nil {
			return err
		}
		s.mcpServer.AddTool(def.tool, def.handler)
		s.logger.Debug("Registered tool", "name", def.tool.Name)
	}

	s.registered = true
	s.logger.Info("Tool registration complete", "tools", len(defs), "profile", s.opts.Profile)
	return nil
}

// toolDefinitions builds the tool set for the configured profile. Both
// profiles expose the same tool names; the strict profile trims every
// optional parameter so schema-restrictive clients see required-only inputs.
func (s *Server) toolDefinitions() []toolDefinition {
	strict := s.opts.Profile == ProfileStrict

	activateOpts := []mcp.ToolOption{
		mcp.WithDescription("Activate a project by path or registered name, creating it on disk if it does not exist yet."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Path to the project root, or a registered project name."),
		),
	}

	writeMemoryOpts := []mcp.ToolOption{
		mcp.WithDescription("Store a named markdown memory in the active project."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Memory name; '.md' is implied."),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Full markdown content of the memory."),
		),
	}
	if !strict {
		writeMemoryOpts = append(writeMemoryOpts,
			mcp.WithString("description",
				mcp.Description("Optional one-line description stored as frontmatter."),
			),
		)
	}

	return []toolDefinition{
		{
			tool:    mcp.NewTool("activate_project", activateOpts...),
			handler: s.handleActivateProject,
		},
		{
			tool: mcp.NewTool("get_active_project",
				mcp.WithDescription("Return the currently active project, if any."),
			),
			handler: s.handleGetActiveProject,
		},
		{
			tool: mcp.NewTool("list_memories",
				mcp.WithDescription("List the names and descriptions of the active project's memories."),
			),
			handler: s.handleListMemories,
		},
		{
			tool: mcp.NewTool("read_memory",
				mcp.WithDescription("Read a named memory of the active project."),
				mcp.WithString("name",
					mcp.Required(),
					mcp.Description("Name of the memory to read."),
				),
			),
			handler: s.handleReadMemory,
		},
		{
			tool:    mcp.NewTool("write_memory", writeMemoryOpts...),
			handler: s.handleWriteMemory,
		},
		{
			tool: mcp.NewTool("delete_memory",
				mcp.WithDescription("Delete a named memory of the active project."),
				mcp.WithString("name",
					mcp.Required(),
					mcp.Description("Name of the memory to delete."),
				),
			),
			handler: s.handleDeleteMemory,
		},
		{
			tool: mcp.NewTool("ping",
				mcp.WithDescription("Trivial liveness check; always answers 'pong'."),
			),
			handler: s.handlePing,
		},
	}
}

func (s *Server) handleActivateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	proj, err := s.resolver.Activate(identifier)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.logger.Error("Project activation failed", "identifier", identifier, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("activation failed: %v", err)), nil
	}

	s.setActiveProject(proj)
	s.logger.Info("Project activated", "root", proj.Root, "languages", proj.Config.Languages)

	languages := "none configured"
	if len(proj.Config.Languages) > 0 {
		languages = strings.Join(proj.Config.Languages, ", ")
	}
	return mcp.NewToolResultText(fmt.Sprintf("Activated project at %s (languages: %s)", proj.Root, languages)), nil
}

func (s *Server) handleGetActiveProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj := s.activeProject()
	if proj == nil {
		return mcp.NewToolResultText("No project is active. Use activate_project first."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Active project: %s", proj.Root)), nil
}

func (s *Server) handleListMemories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj := s.activeProject()
	if proj == nil {
		return mcp.NewToolResultError("no active project; use activate_project first"), nil
	}

	memories, err := proj.Memories().List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(memories) == 0 {
		return mcp.NewToolResultText("The project has no memories yet."), nil
	}

	var b strings.Builder
	for _, m := range memories {
		if m.Description != "" {
			fmt.Fprintf(&b, "%s: %s\n", m.Name, m.Description)
		} else {
			fmt.Fprintf(&b, "%s\n", m.Name)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleReadMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj := s.activeProject()
	if proj == nil {
		return mcp.NewToolResultError("no active project; use activate_project first"), nil
	}

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := proj.Memories().Read(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) handleWriteMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj := s.activeProject()
	if proj == nil {
		return mcp.NewToolResultError("no active project; use activate_project first"), nil
	}

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if description := request.GetString("description", ""); description != "" {
		content = fmt.Sprintf("---\ndescription: %s\n---\n\n%s", description, content)
	}

	if err := proj.Memories().Write(name, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Memory %q stored.", name)), nil
}

func (s *Server) handleDeleteMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj := s.activeProject()
	if proj == nil {
		return mcp.NewToolResultError("no active project; use activate_project first"), nil
	}

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := proj.Memories().Delete(name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Memory %q deleted.", name)), nil
}

func (s *Server) handlePing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong"), nil
}
