// Package api provides the tama Lua module.
//
// Task files, Lua config fragments and Lua event listeners reach the host
// through a single module, loaded with require("tama") or passed as the only
// argument when a chunk returns a function:
//
//	return function(tama)
//	    tama.registerMultiTask("copy", "Copy files", function(t)
//	        tama.log.info("copying " .. t.target)
//	    end)
//	end
//
// # Functions
//
//	registerTask(name, [desc], fn | {tasks})   basic task or alias list
//	registerMultiTask(name, [desc], fn)        multi task
//	loadTasks(dir)                             load a task directory
//	config([path]) / setConfig(path, value)    task configuration
//	expand(cwd, pattern...)                    glob relative to cwd
//	on(event, fn)                              lifecycle listener
//	log.debug/info/warn/error/writeln(msg)     logging
//
// Task functions receive a table with name, nameArgs, target, args, data
// and options fields. Returning false or raising an error fails the task.
package api
