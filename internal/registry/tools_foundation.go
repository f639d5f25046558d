package registry

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/mcpdash/internal/runtime"
	"github.com/vinodismyname/mcpdash/internal/workbooks"
	"github.com/vinodismyname/mcpdash/pkg/mcperr"
)

// OpenWorkbookInput defines parameters for opening a workbook.
type OpenWorkbookInput struct {
	Path string `json:"path" jsonschema_description:"Absolute or allowed path to an Excel workbook"`
}

// OpenWorkbookOutput documents the response fields for open_workbook.
type OpenWorkbookOutput struct {
	WorkbookID      string `json:"workbook_id" jsonschema_description:"Server-assigned workbook handle ID"`
	Path            string `json:"path" jsonschema_description:"Canonical path the handle refers to"`
	MaxPayloadBytes int    `json:"maxPayloadBytes" jsonschema_description:"Effective payload size limit in bytes"`
	MaxCellsPerOp   int    `json:"maxCellsPerOp" jsonschema_description:"Effective per-operation cell budget"`
}

// CloseWorkbookInput defines parameters for closing a workbook.
type CloseWorkbookInput struct {
	WorkbookID string `json:"workbook_id" jsonschema_description:"Workbook handle ID to close"`
}

// CloseWorkbookOutput acknowledges a closed handle.
type CloseWorkbookOutput struct {
	Success bool `json:"success" jsonschema_description:"True when the handle was closed"`
}

// SheetInfo summarizes a sheet without loading full data.
type SheetInfo struct {
	Name        string   `json:"name" jsonschema_description:"Sheet name"`
	RowCount    int      `json:"rowCount" jsonschema_description:"Approximate row count"`
	ColumnCount int      `json:"columnCount" jsonschema_description:"Approximate column count"`
	Headers     []string `json:"headers,omitempty" jsonschema_description:"Header row when inferred"`
}

// ListStructureInput defines parameters for structure discovery.
type ListStructureInput struct {
	WorkbookID string `json:"workbook_id" jsonschema_description:"Workbook handle ID"`
}

// ListStructureOutput summarizes workbook structure.
type ListStructureOutput struct {
	WorkbookID string      `json:"workbook_id"`
	Sheets     []SheetInfo `json:"sheets"`
}

// RegisterFoundationTools wires workbook lifecycle and discovery tools so a
// client can locate the raw-data sheet before building dashboard tables.
func RegisterFoundationTools(s *server.MCPServer, reg *Registry, limits runtime.Limits, mgr *workbooks.Manager) {
	openTool := mcp.NewTool(
		"open_workbook",
		mcp.WithDescription("Open a workbook and return a handle ID with effective limits"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute or allowed path to an Excel workbook (.xlsx, .xlsm, .xltx, .xltm)")),
		mcp.WithOutputSchema[OpenWorkbookOutput](),
	)
	s.AddTool(openTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in OpenWorkbookInput) (*mcp.CallToolResult, error) {
		if strings.TrimSpace(in.Path) == "" {
			return mcperr.New(mcperr.Validation, "path is required"), nil
		}
		id, canonical, err := mgr.Open(ctx, in.Path)
		if err != nil {
			return mcperr.Wrapf(mcperr.OpenFailed, "%v", err), nil
		}
		out := OpenWorkbookOutput{
			WorkbookID:      id,
			Path:            canonical,
			MaxPayloadBytes: limits.MaxPayloadBytes,
			MaxCellsPerOp:   limits.MaxCellsPerOp,
		}
		return mcp.NewToolResultStructured(out, "workbook opened: "+id), nil
	}))
	reg.Register(openTool)

	closeTool := mcp.NewTool(
		"close_workbook",
		mcp.WithDescription("Close a previously opened workbook handle"),
		mcp.WithString("workbook_id", mcp.Required(), mcp.Description("Workbook handle ID")),
		mcp.WithOutputSchema[CloseWorkbookOutput](),
	)
	s.AddTool(closeTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in CloseWorkbookInput) (*mcp.CallToolResult, error) {
		if err := mgr.CloseHandle(ctx, in.WorkbookID); err != nil {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		return mcp.NewToolResultStructured(CloseWorkbookOutput{Success: true}, "workbook closed"), nil
	}))
	reg.Register(closeTool)

	listStructure := mcp.NewTool(
		"list_structure",
		mcp.WithDescription("Return workbook structure: sheets, dimensions, headers (no cell data)"),
		mcp.WithString("workbook_id", mcp.Required(), mcp.Description("Workbook handle ID")),
		mcp.WithOutputSchema[ListStructureOutput](),
	)
	s.AddTool(listStructure, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in ListStructureInput) (*mcp.CallToolResult, error) {
		out := ListStructureOutput{WorkbookID: in.WorkbookID}
		err := mgr.WithRead(in.WorkbookID, func(f *excelize.File, _ int64) error {
			for _, name := range f.GetSheetList() {
				info := SheetInfo{Name: name}
				if dim, derr := f.GetSheetDimension(name); derr == nil && strings.Contains(dim, ":") {
					parts := strings.Split(dim, ":")
					if x, y, e := excelize.CellNameToCoordinates(parts[1]); e == nil {
						info.ColumnCount = x
						info.RowCount = y
					}
				}
				rows, rerr := f.Rows(name)
				if rerr == nil {
					if rows.Next() {
						if vals, cerr := rows.Columns(); cerr == nil {
							info.Headers = vals
						}
					}
					_ = rows.Close()
				}
				out.Sheets = append(out.Sheets, info)
			}
			return nil
		})
		if err != nil {
			if err == workbooks.ErrHandleNotFound {
				return mcperr.New(mcperr.InvalidHandle, ""), nil
			}
			return mcperr.Wrapf(mcperr.DiscoveryFailed, "%v", err), nil
		}
		return mcp.NewToolResultStructured(out, "sheets listed"), nil
	}))
	reg.Register(listStructure)
}
