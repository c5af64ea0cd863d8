/*
Viewctl manages a video library database from the command line.

It opens the same SQLite database as the server, so it should not be used
while the server is running against that file.

Usage:

	viewctl [--db path] [--verbose] <command>

Commands:

	add       Add videos by filename or from a JSON file
	delete    Delete videos by id
	prop      Create, list and set properties
	view      Print the videos of a viewport
	groups    Print the groups of a viewport
	reindex   Rebuild the search term index

The database path defaults to $DATABASE_DIR/videos.db. View output is a
table on a terminal and one video id per line otherwise; --output forces
either.
*/
package main
