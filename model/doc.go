// Package model abstracts language model providers behind a synchronous
// Decision contract: given instructions, history and tool schemas, a model
// either selects tools with arguments or produces a final answer.
package model
