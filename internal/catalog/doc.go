/*
Package catalog finds prompt definitions on disk and turns them into kit
options.

Definitions live under the catalog directory in YAML, TOML or JSON; a .js
file is a prompt written entirely as a script. Names default to the file
name without its extension.

	# prompts/fruit.yaml
	placeholder: Pick a fruit
	docs: fruit
	choices:
	  - name: Apple
	    preview: "# Apple\nCrisp."
	  - name: Banana
	script: fruit.js   # optional: generator, validator and callbacks

The built-in "new" prompt lists the ways to create a script and offers to
create one named after whatever was typed when nothing matches.
*/
package catalog
