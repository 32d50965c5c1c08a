// Command rankedprofile prints ranked player profiles, rating timelines and
// season records from the public ranked API.
package main

func main() {
	Execute()
}
