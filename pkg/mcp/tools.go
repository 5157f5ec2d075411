package mcp

import "github.com/mark3labs/mcp-go/mcp"

func exploreModuleTool() mcp.Tool {
	return mcp.NewTool("explore_module",
		mcp.WithDescription("Explore a Python module's public API surface: functions, classes, constants and submodules, discovered by parsing source on disk. Missing packages are fetched from PyPI into a temporary scope."),
		mcp.WithString("module",
			mcp.Required(),
			mcp.Description("Module specifier: [package::]dotted.path[@version], e.g. 'json', 'requests.adapters' or 'pillow::PIL@10.0.0'"),
		),
		mcp.WithNumber("depth",
			mcp.Description("Maximum submodule depth (default 2)"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'json' (default) or 'pretty'"),
		),
	)
}

func getSignatureTool() mcp.Tool {
	return mcp.NewTool("get_signature",
		mcp.WithDescription("Get the parameter list and return type of a function, class constructor or callable, following import chains for re-exported symbols."),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Object specifier: 'module:object' or 'module.object', e.g. 'json:loads'"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'json' (default) or 'pretty'"),
		),
	)
}
