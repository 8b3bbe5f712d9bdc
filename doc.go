// Package sheet2png renders every worksheet of a spreadsheet to its own PNG
// image using headless Chrome.
//
// # Quick Start
//
// Create an exporter and run it over a workbook:
//
//	exp, err := sheet2png.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := exp.ExportAll(ctx, "report.xlsx", "./output", 2)
//	if err != nil {
//	    log.Fatal(err) // the run could not start
//	}
//	for _, r := range summary.Failed() {
//	    log.Printf("%s: %v", r.Sheet, r.Err)
//	}
//
// # Rendering Pipeline
//
// Each sheet goes through the same steps, strictly one after another:
//
//  1. Convert: cached cell values, merged ranges and basic cell styles
//     become an HTML table (excelize, no formula evaluation)
//  2. Style: the table is wrapped in a fixed document template and CSS
//  3. Capture: a fresh page in an isolated browser context loads the
//     document, waits for it to settle, and screenshots the first table
//  4. Write: the PNG is saved as <outputDir>/<sheet name>.png, with spaces
//     and path separators replaced by underscores
//
// A failure in any step is recorded for that sheet and the run continues.
// One headless browser serves the whole run and is closed when it ends.
//
// # Configuration
//
// Use functional options to customize the exporter:
//
//	exp, err := sheet2png.NewExporter(
//	    sheet2png.WithTimeout(2 * time.Minute),
//	    sheet2png.WithStyle("standard"),
//	    sheet2png.WithCollisionPolicy(sheet2png.CollisionSuffix),
//	    sheet2png.WithLogger(zerolog.New(os.Stderr)),
//	)
//
// The scale factor passed to ExportAll is the device pixel ratio: 2 yields
// images twice as wide and tall as the CSS layout.
//
// # Browser
//
// Rod downloads Chromium on first use. Set ROD_BROWSER_BIN to use an
// installed browser, and ROD_NO_SANDBOX=1 in containers.
package sheet2png
