package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/participadf/ouvidoria/internal/auth"
)

func main() {
	algo := flag.String("algo", "bcrypt", "bcrypt ou argon2id")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: hashpass [-algo bcrypt|argon2id] <password>")
		os.Exit(1)
	}

	var (
		hash string
		err  error
	)
	switch *algo {
	case "bcrypt":
		hash, err = auth.Hash(flag.Arg(0))
	case "argon2id":
		hash, err = auth.HashArgon2id(flag.Arg(0))
	default:
		fmt.Fprintf(os.Stderr, "algoritmo desconhecido: %s\n", *algo)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
