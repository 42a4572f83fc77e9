// importctl runs the sales import pipeline from the command line, without
// going through the HTTP service.
package main

func main() {
	Execute()
}
