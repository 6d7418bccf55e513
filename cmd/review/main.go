// Command review drives an LLM-assisted, multi-round code review against a
// local git repository: plan, three review iterations, an error-fix loop,
// then push.
package main

func main() {
	Execute()
}
