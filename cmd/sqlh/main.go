// Command sqlh inspects the database configuration of the current environment
// and does page arithmetic for paginated queries.
//
// Usage:
//
//	sqlh databases                 open every configured pool and report its status
//	sqlh pages --items 45 --limit 20
//	sqlh version
//
// Databases are configured with DATABASE_URL and DATABASE_<CODE>_URL.
package main

func main() {
	Execute()
}
