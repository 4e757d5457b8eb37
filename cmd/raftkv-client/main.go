// Command raftkv-client is a REPL for exercising a cluster over the same
// UDP/JSON wire protocol the replicas speak (spec.md §4.1/§6).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"raftkv/client"
)

func main() {
	localPort := flag.Int("port", 0, "local UDP port for this client (0 = ephemeral)")
	busPort := flag.Int("bus", 9000, "port the replicas share")
	firstID := flag.String("id", "0000", "replica id to try first")
	flag.Parse()

	c, err := client.New("client", *localPort, *busPort, *firstID)
	if err != nil {
		log.Fatalf("failed to start client: %v", err)
	}
	defer c.Close()

	fmt.Println("raftkv client. Commands: PUT <key> <value>, GET <key>, QUIT")

	scanner := bufio.NewScanner(os.Stdin)
	mid := 0

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(parts) == 0 {
			continue
		}

		mid++
		id := "m" + strconv.Itoa(mid)

		switch strings.ToUpper(parts[0]) {
		case "PUT":
			if len(parts) < 3 {
				fmt.Println("usage: PUT <key> <value>")
				continue
			}
			key, value := parts[1], strings.Join(parts[2:], " ")
			if err := c.Put(key, value, id, 2*time.Second); err != nil {
				fmt.Printf("error: %v\n", err)
			} else {
				fmt.Println("ok")
			}

		case "GET":
			if len(parts) != 2 {
				fmt.Println("usage: GET <key>")
				continue
			}
			value, ok, err := c.Get(parts[1], id, 2*time.Second)
			switch {
			case err != nil:
				fmt.Printf("error: %v\n", err)
			case !ok:
				fmt.Println("(missing)")
			default:
				fmt.Println(value)
			}

		case "QUIT", "EXIT":
			return

		default:
			fmt.Println("unknown command. Available: PUT, GET, QUIT")
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("error reading input: %v", err)
	}
}
