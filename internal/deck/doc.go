// Package deck renders enriched presentations into downstream formats:
// deck markup XML for the ajstarks deck toolchain, and a standalone HTML
// preview page with speaker notes. Both renderers are optional
// collaborators gated by configuration; the generation stage itself never
// depends on them.
package deck
