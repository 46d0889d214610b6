package query

// exampleDocument is shown to clients that ask for the query endpoint
// without sending a document.
const exampleDocument = `{
  movie(imdbID: "7040874") {
    imdbID
  }
}`

func ExampleRequest() Request {
	return Request{Query: exampleDocument}
}
