package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the shared schema fragment for tools that take one image.
func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

// detectionProperties are the schema fragments for the corner-detection
// parameters shared by detect_corners and annotate_corners.
func detectionProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty("Absolute path to the image file"),
		"max_corners": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum number of corners to return. 0 or negative means unbounded. Default 100",
			"default":     100,
		},
		"quality_level": map[string]interface{}{
			"type":        "number",
			"description": "Relative response threshold in (0,1]. Default 0.01",
			"default":     0.01,
		},
		"min_distance": map[string]interface{}{
			"type":        "number",
			"description": "Minimum distance in pixels between accepted corners. Values below 1 disable spatial suppression. Default 10",
			"default":     10,
		},
		"block_size": map[string]interface{}{
			"type":        "integer",
			"description": "Odd window size for the gradient structure tensor. Default 3",
			"default":     3,
		},
		"use_harris": map[string]interface{}{
			"type":        "boolean",
			"description": "Use the Harris response instead of minimum-eigenvalue. Default false",
			"default":     false,
		},
		"harris_k": map[string]interface{}{
			"type":        "number",
			"description": "Harris trace weighting constant. Default 0.04",
			"default":     0.04,
		},
		"smooth_sigma": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian pre-smoothing radius. 0 disables smoothing. Default 0",
			"default":     0,
		},
		"mask_path": map[string]interface{}{
			"type":        "string",
			"description": "Optional path to a same-sized mask image; only pixels with nonzero mask intensity are eligible",
		},
		"equalize": map[string]interface{}{
			"type":        "boolean",
			"description": "Apply histogram equalization before detection. Default false",
			"default":     false,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, and grayscale status. Caches the image for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Corner Detection
		{
			Name:        "detect_corners",
			Description: "Detect trackable corner points in an image and return subpixel locations paired with cornerness strength scores, sorted strongest first.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectionProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "extract_corners",
			Description: "Detect corners with the standard tracking defaults (top 100 corners, quality 0.01, minimum spacing 10px, minimum-eigenvalue response).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"equalize": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply histogram equalization before detection. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},

		// Template Matching
		{
			Name:        "match_template",
			Description: "Slide a template image over a search image and return the best placement under a normalized sum-of-squared-differences score (lower is better).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":          pathProperty("Absolute path to the search image"),
					"template_path": pathProperty("Absolute path to the template image; must fit inside the search image"),
				},
				"required": []string{"path", "template_path"},
			},
		},

		// Visualization
		{
			Name:        "annotate_corners",
			Description: "Detect corners and write a copy of the image with score-colored markers (and optional score labels) to an output file.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": annotateProperties(),
				"required":   []string{"path", "output_path"},
			},
		},
	}
}

func annotateProperties() map[string]interface{} {
	props := detectionProperties()
	props["output_path"] = pathProperty("Where to write the annotated image (.png, .jpg, .gif, .tif, .bmp, or .webp)")
	props["marker"] = map[string]interface{}{
		"type":        "string",
		"description": "Marker shape: \"circle\" or \"cross\". Default \"circle\"",
		"default":     "circle",
	}
	props["show_scores"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Draw each corner's numeric score next to its marker. Default false",
		"default":     false,
	}
	return props
}
