package main

import "github.com/wundergraph/graphql-anonymizer/cmd"

func main() {
	cmd.Execute()
}
