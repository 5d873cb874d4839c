// Package pipeline provides a framework for executing analysis steps in
// sequence.
//
// The pipeline pattern is used to process a page through its stages:
// fetching the document, extracting the signal snapshot, running the
// analysis agents, and composing the overall score. Each stage is
// implemented as a Step that receives the shared report and fills in
// its part.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between stages
package pipeline
