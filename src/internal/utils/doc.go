// Package utils provides general-purpose helpers for zyro.
//
// # Components
//
//   - URL path utilities: canonical route paths and base/route joining
//   - File path utilities: resolve paths relative to the config directory
//   - File utilities: safe file closing
//
// # Example Usage
//
// Route path canonicalization:
//
//	utils.NormalizeURLPath("items/")            // "/items"
//	utils.JoinURLPath("/api/", "/items")        // "/api/items"
//
// Path resolution:
//
//	absPath := utils.GetAbsolutePath(".zyro_state.json", "/srv/app")
//	// Returns: /srv/app/.zyro_state.json
package utils
